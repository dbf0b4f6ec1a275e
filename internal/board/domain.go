// Package board implements the classifieds domain: listings, validation,
// pagination, and the Mongo-backed listing store.
package board

import (
	"time"
)

// Kind distinguishes a job offer from a service offer.
type Kind string

const (
	// KindJob marks a listing that offers or seeks work.
	KindJob Kind = "job"
	// KindService marks a listing that offers a service.
	KindService Kind = "service"
)

// ParseKind maps a raw payload to a Kind.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindJob:
		return KindJob, true
	case KindService:
		return KindService, true
	}
	return "", false
}

// PostIDSequence is the counter name used to allocate listing ids.
const PostIDSequence = "postid"

// Listing is a persisted classified ad. All fields except Description are
// immutable after creation; Description may change while the listing is
// inside the owner edit window.
type Listing struct {
	ID           int64     `bson:"id" json:"id"`
	OwnerID      int64     `bson:"owner_id" json:"owner_id"`
	OwnerDisplay string    `bson:"owner_display,omitempty" json:"owner_display,omitempty"`
	Kind         Kind      `bson:"kind" json:"kind"`
	Category     string    `bson:"category" json:"category"`
	Description  string    `bson:"description" json:"description"`
	Contact      string    `bson:"contact,omitempty" json:"contact,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// EditableAt reports whether the owner may still edit the listing at the
// given instant. The window is evaluated fresh on every attempt.
func (l Listing) EditableAt(now time.Time, window time.Duration) bool {
	return now.Sub(l.CreatedAt) < window
}

// Filter narrows store queries. Zero-valued fields are ignored, so any
// subset of category, kind, and owner may be combined.
type Filter struct {
	Category string
	Kind     Kind
	OwnerID  int64
}
