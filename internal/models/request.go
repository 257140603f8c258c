package models

// RequestStatus enumerates the lifecycle states shared by dropoff and pickup
// requests. Transitions form a small explicit state machine:
//
//	pending -> approved -> completed
//	pending -> rejected
//
// completed and rejected are terminal.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestCompleted RequestStatus = "completed"
	RequestRejected  RequestStatus = "rejected"
)

// Valid reports whether the status is one of the known request states.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestCompleted, RequestRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestRejected
}

// CanTransitionTo reports whether the edge s -> next is a legal transition.
// Self-transitions are rejected, so re-applying "completed" to an already
// completed request fails rather than repeating its side effects.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}

	switch s {
	case RequestPending:
		return next == RequestApproved || next == RequestRejected
	case RequestApproved:
		return next == RequestCompleted
	}
	return false
}

// DropoffRequest asks a custodian to accept a found item from its finder.
type DropoffRequest struct {
	BaseModel

	FinderID string  `gorm:"type:uuid;index;not null" json:"finder_id"`
	Finder   Profile `gorm:"foreignKey:FinderID" json:"-"`

	ItemID string `gorm:"type:uuid;index;not null" json:"item_id"`
	Item   Item   `gorm:"foreignKey:ItemID" json:"-"`

	CustodianID string    `gorm:"type:uuid;index;not null" json:"custodian_id"`
	Custodian   Custodian `gorm:"foreignKey:CustodianID" json:"-"`

	Notes  string        `gorm:"type:text" json:"notes"`
	Status RequestStatus `gorm:"type:varchar(32);index;default:'pending'" json:"status"`
}

// PickupRequest asks a custodian to hand a held item back to its owner. The
// verification code is shown to the requester and checked manually by
// custodian staff at handoff; it is advisory and carries no uniqueness
// guarantee.
type PickupRequest struct {
	BaseModel

	OwnerID string  `gorm:"type:uuid;index;not null" json:"owner_id"`
	Owner   Profile `gorm:"foreignKey:OwnerID" json:"-"`

	ItemID string `gorm:"type:uuid;index;not null" json:"item_id"`
	Item   Item   `gorm:"foreignKey:ItemID" json:"-"`

	CustodianID string    `gorm:"type:uuid;index;not null" json:"custodian_id"`
	Custodian   Custodian `gorm:"foreignKey:CustodianID" json:"-"`

	Notes            string        `gorm:"type:text" json:"notes"`
	Status           RequestStatus `gorm:"type:varchar(32);index;default:'pending'" json:"status"`
	VerificationCode string        `gorm:"type:varchar(16);not null" json:"verification_code"`
}
