package catalog

import "github.com/google/uuid"

// assignID fills a zero primary key with a time-ordered UUIDv7, so that
// primary key order follows insertion order.
func assignID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	v, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = v
	return nil
}
