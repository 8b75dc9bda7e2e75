package model

// User is owned by the identity service; this service only reads it.
type User struct {
	ID             string   `json:"-" bson:"_id,omitempty"`
	Email          string   `json:"email" bson:"email"`
	Name           string   `json:"name" bson:"name"`
	AvailableSlots []string `json:"available_slots" bson:"available_slots"`
}

// Caller is the resolved identity of the authenticated user, handed explicitly
// from the identity step to the operations that need it.
type Caller struct {
	Email          string
	Name           string
	AvailableSlots []string
}

func (u *User) Caller() Caller {
	return Caller{
		Email:          u.Email,
		Name:           u.Name,
		AvailableSlots: u.AvailableSlots,
	}
}
