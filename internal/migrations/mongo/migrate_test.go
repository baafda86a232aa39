package mongo

import (
	"slotbook/internal/bookings/locker"
	bookingsrepo "slotbook/internal/bookings/repository"
	providersrepo "slotbook/internal/providers/repository"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	specs := Collections()
	for _, name := range []string{providersrepo.CollectionName, bookingsrepo.CollectionName, locker.CollectionName} {
		spec, ok := specs[name]
		if !ok {
			t.Fatalf("missing collection %s", name)
		}
		if _, ok := spec.Validator["$jsonSchema"]; !ok {
			t.Errorf("%s has no $jsonSchema validator", name)
		}
		if len(spec.Indexes) == 0 {
			t.Errorf("%s has no indexes", name)
		}
	}
}

func TestActiveSlotIndex(t *testing.T) {
	var found bool
	for _, idx := range BookingsIndexes {
		if idx.Options == nil || idx.Options.Name == nil || *idx.Options.Name != ActiveSlotIndex {
			continue
		}
		found = true

		if idx.Options.Unique == nil || !*idx.Options.Unique {
			t.Error("active slot index must be unique")
		}
		filter, ok := idx.Options.PartialFilterExpression.(bson.M)
		if !ok || filter["active"] != true {
			t.Errorf("partial filter = %v, want active: true", idx.Options.PartialFilterExpression)
		}
		keys := idx.Keys.(bson.D)
		if len(keys) != 2 || keys[0].Key != "provider_id" || keys[1].Key != "date_time" {
			t.Errorf("keys = %v", keys)
		}
	}
	if !found {
		t.Fatalf("index %s not defined", ActiveSlotIndex)
	}
}

func TestSlotLockTTL(t *testing.T) {
	idx := SlotLocksIndexes[0]
	if idx.Options == nil || idx.Options.ExpireAfterSeconds == nil || *idx.Options.ExpireAfterSeconds != 0 {
		t.Fatal("expires_at index must expire documents at the stored instant")
	}
}
