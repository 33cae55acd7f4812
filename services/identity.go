package services

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func requireUser(id *Identity) error {
	if id == nil || id.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(id *Identity) error {
	if err := requireUser(id); err != nil {
		return err
	}
	if !id.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}
