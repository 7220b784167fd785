package model

import "github.com/google/uuid"

// asignarID fills an empty primary key before insert. The production schema
// also defaults ids with gen_random_uuid(); tests run on sqlite, which cannot.
func asignarID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
