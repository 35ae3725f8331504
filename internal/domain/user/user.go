package user

import "encoding/json"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a record of the users document. APIKey is the bearer credential
// and is matched exactly, it is never hashed.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	APIKey   string `json:"apiKey"`
}

// UnmarshalJSON accepts the id as a JSON string or number so hand-edited
// documents with numeric ids still load.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User

	aux := struct {
		*plain
		ID OpaqueID `json:"id"`
	}{plain: (*plain)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	u.ID = string(aux.ID)
	return nil
}

// Identity is the resolved caller attached to an authenticated request.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u User) Identity() Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
