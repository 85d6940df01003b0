package service

import (
	"context"

	"github.com/google/uuid"
)

// ResolvedID is the outcome of resolving a client-supplied identifier
// against the set of persisted ids. Existing is true only when the raw value
// parses as a UUID and that UUID is already persisted; placeholder values
// like "new-173..." always resolve to a new entity.
type ResolvedID struct {
	ID       uuid.UUID
	Existing bool
}

// ResolveClientID applies the single try-parse-else-new rule used for every
// child collection in a submission.
func ResolveClientID(raw string, existing map[uuid.UUID]struct{}) ResolvedID {
	if raw == "" {
		return ResolvedID{}
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return ResolvedID{}
	}

	if _, ok := existing[id]; !ok {
		return ResolvedID{}
	}

	return ResolvedID{ID: id, Existing: true}
}

// SubmittedItem pairs the client-side identifier of one submitted entity
// with its business fields.
type SubmittedItem[T any] struct {
	ClientID string
	Fields   T
}

// ReconcileHooks supplies the persistence operations the reconciler drives.
// Insert returns the freshly generated durable id.
type ReconcileHooks[T any] struct {
	Update func(ctx context.Context, id uuid.UUID, fields T) error
	Insert func(ctx context.Context, fields T) (uuid.UUID, error)
	Delete func(ctx context.Context, id uuid.UUID) error
}

// ReconcileOutcome reports what a reconciliation pass changed. ClientIDs
// maps every non-empty submitted id, placeholder or durable, to the durable
// id it ended up as.
type ReconcileOutcome struct {
	Kept      []uuid.UUID
	Inserted  []uuid.UUID
	Deleted   []uuid.UUID
	ClientIDs map[string]uuid.UUID
}

// ReconcileSet replaces the persisted child-entity set with the submitted
// one: entities whose client id resolves to an existing record are updated,
// the rest are inserted, and persisted entities absent from the submission
// are deleted. Resubmitting the same snapshot with durable ids echoed back
// yields updates only.
func ReconcileSet[T any](ctx context.Context, existingIDs []uuid.UUID, submitted []SubmittedItem[T], hooks ReconcileHooks[T]) (ReconcileOutcome, error) {
	existing := make(map[uuid.UUID]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	outcome := ReconcileOutcome{ClientIDs: make(map[string]uuid.UUID, len(submitted))}
	kept := make(map[uuid.UUID]struct{}, len(submitted))

	for _, item := range submitted {
		resolved := ResolveClientID(item.ClientID, existing)
		if resolved.Existing {
			if err := hooks.Update(ctx, resolved.ID, item.Fields); err != nil {
				return ReconcileOutcome{}, err
			}
			kept[resolved.ID] = struct{}{}
			outcome.Kept = append(outcome.Kept, resolved.ID)
			outcome.ClientIDs[item.ClientID] = resolved.ID
			continue
		}

		newID, err := hooks.Insert(ctx, item.Fields)
		if err != nil {
			return ReconcileOutcome{}, err
		}
		outcome.Inserted = append(outcome.Inserted, newID)
		if item.ClientID != "" {
			outcome.ClientIDs[item.ClientID] = newID
		}
	}

	for _, id := range existingIDs {
		if _, ok := kept[id]; ok {
			continue
		}
		if err := hooks.Delete(ctx, id); err != nil {
			return ReconcileOutcome{}, err
		}
		outcome.Deleted = append(outcome.Deleted, id)
	}

	return outcome, nil
}
