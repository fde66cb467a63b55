// Package domain defines typed identifiers and shared domain primitives.
//
// IDs are distinct types over uuid.UUID so the compiler rejects a DogID
// where a HandlerID is expected. Parse functions enforce the invariant
// that IDs are valid, non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "pawport/pkg/domain-errors"
)

type (
	// DogID identifies a dog profile.
	DogID uuid.UUID
	// HandlerID identifies a handler (owner) account.
	HandlerID uuid.UUID
	// RecordID identifies a normalized record.
	RecordID uuid.UUID
	// DocumentID identifies a raw uploaded document.
	DocumentID uuid.UUID
	// OrgID identifies a business organization performing scans.
	OrgID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return u, nil
}

// ParseDogID validates and returns a DogID.
func ParseDogID(s string) (DogID, error) {
	u, err := parseUUID(s, "dog_id")
	return DogID(u), err
}

// ParseHandlerID validates and returns a HandlerID.
func ParseHandlerID(s string) (HandlerID, error) {
	u, err := parseUUID(s, "handler_id")
	return HandlerID(u), err
}

// ParseRecordID validates and returns a RecordID.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record_id")
	return RecordID(u), err
}

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document_id")
	return DocumentID(u), err
}

// ParseOrgID validates and returns an OrgID.
func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID(s, "org_id")
	return OrgID(u), err
}

func (d DogID) String() string      { return uuid.UUID(d).String() }
func (d DogID) IsNil() bool         { return uuid.UUID(d) == uuid.Nil }
func (h HandlerID) String() string  { return uuid.UUID(h).String() }
func (h HandlerID) IsNil() bool     { return uuid.UUID(h) == uuid.Nil }
func (r RecordID) String() string   { return uuid.UUID(r).String() }
func (r RecordID) IsNil() bool      { return uuid.UUID(r) == uuid.Nil }
func (d DocumentID) String() string { return uuid.UUID(d).String() }
func (d DocumentID) IsNil() bool    { return uuid.UUID(d) == uuid.Nil }
func (o OrgID) String() string      { return uuid.UUID(o).String() }
func (o OrgID) IsNil() bool         { return uuid.UUID(o) == uuid.Nil }

// NewDogID returns a fresh random DogID.
func NewDogID() DogID { return DogID(uuid.New()) }

// NewHandlerID returns a fresh random HandlerID.
func NewHandlerID() HandlerID { return HandlerID(uuid.New()) }

// NewRecordID returns a fresh random RecordID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// NewDocumentID returns a fresh random DocumentID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewOrgID returns a fresh random OrgID.
func NewOrgID() OrgID { return OrgID(uuid.New()) }

// MarshalText implementations keep IDs as plain UUID strings in JSON.
func (d DogID) MarshalText() ([]byte, error)      { return []byte(d.String()), nil }
func (h HandlerID) MarshalText() ([]byte, error)  { return []byte(h.String()), nil }
func (r RecordID) MarshalText() ([]byte, error)   { return []byte(r.String()), nil }
func (d DocumentID) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (o OrgID) MarshalText() ([]byte, error)      { return []byte(o.String()), nil }

func (d *DogID) UnmarshalText(b []byte) error {
	id, err := ParseDogID(string(b))
	if err != nil {
		return err
	}
	*d = id
	return nil
}

func (h *HandlerID) UnmarshalText(b []byte) error {
	id, err := ParseHandlerID(string(b))
	if err != nil {
		return err
	}
	*h = id
	return nil
}

func (r *RecordID) UnmarshalText(b []byte) error {
	id, err := ParseRecordID(string(b))
	if err != nil {
		return err
	}
	*r = id
	return nil
}

func (d *DocumentID) UnmarshalText(b []byte) error {
	id, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*d = id
	return nil
}

func (o *OrgID) UnmarshalText(b []byte) error {
	id, err := ParseOrgID(string(b))
	if err != nil {
		return err
	}
	*o = id
	return nil
}
