package inventory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/jhoicas/Tiendas-api/internal/domain/entity"
)

type stockKey struct {
	kind      entity.LocationKind
	location  string
	productID string
}

func keyOf(productID string, loc entity.LocationRef) stockKey {
	return stockKey{kind: loc.Kind, location: loc.ID, productID: productID}
}

func (k stockKey) ref() entity.LocationRef {
	return entity.LocationRef{Kind: k.kind, ID: k.location}
}

func compareKeys(a, b stockKey) int {
	return cmp.Or(
		cmp.Compare(a.kind, b.kind),
		cmp.Compare(a.location, b.location),
		cmp.Compare(a.productID, b.productID),
	)
}

// workset unidad de trabajo de una solicitud: bloquea todos los registros tocados en orden
// determinista, acumula los cambios en memoria y los escribe al final.
type workset struct {
	repos   TxRepos
	want    map[stockKey]bool // true = crear si no existe
	records map[stockKey]*entity.LocationInventory
	dirty   map[stockKey]bool
	now     time.Time
}

func newWorkset(repos TxRepos, now time.Time) *workset {
	return &workset{
		repos:   repos,
		want:    make(map[stockKey]bool),
		records: make(map[stockKey]*entity.LocationInventory),
		dirty:   make(map[stockKey]bool),
		now:     now,
	}
}

// need registra un registro a bloquear. create=true para destinos (upsert).
func (w *workset) need(productID string, loc entity.LocationRef, create bool) {
	k := keyOf(productID, loc)
	w.want[k] = w.want[k] || create
}

// lock adquiere los bloqueos (SELECT ... FOR UPDATE) en orden (tipo, ubicación, producto)
// para que dos solicitudes concurrentes no se bloqueen mutuamente.
func (w *workset) lock(ctx context.Context) error {
	keys := make([]stockKey, 0, len(w.want))
	for k := range w.want {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	for _, k := range keys {
		var (
			rec *entity.LocationInventory
			err error
		)
		if w.want[k] {
			rec, err = w.repos.Stock.LockOrCreate(ctx, k.productID, k.ref())
		} else {
			rec, err = w.repos.Stock.GetForUpdate(ctx, k.productID, k.ref())
		}
		if err != nil {
			return err
		}
		w.records[k] = rec
	}
	return nil
}

// get devuelve el registro bloqueado (nil si no existe) y lo marca como modificado.
func (w *workset) get(productID string, loc entity.LocationRef) *entity.LocationInventory {
	k := keyOf(productID, loc)
	rec := w.records[k]
	if rec != nil {
		w.dirty[k] = true
	}
	return rec
}

// flush persiste los registros modificados en orden de bloqueo.
func (w *workset) flush(ctx context.Context) error {
	keys := make([]stockKey, 0, len(w.dirty))
	for k := range w.dirty {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	for _, k := range keys {
		rec := w.records[k]
		rec.UpdatedAt = w.now
		if err := w.repos.Stock.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// touched copias de los registros modificados, para el resultado.
func (w *workset) touched() []*entity.LocationInventory {
	keys := make([]stockKey, 0, len(w.dirty))
	for k := range w.dirty {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	out := make([]*entity.LocationInventory, 0, len(keys))
	for _, k := range keys {
		out = append(out, w.records[k].Clone())
	}
	return out
}
