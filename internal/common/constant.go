package common

// User payload field names shared by the validation, integrity and
// normalization steps.
const (
	FieldID       = "id"
	FieldUsername = "username"
	FieldActive   = "active"
	FieldDeleted  = "deleted"
	FieldRoleID   = "role_id"
	FieldProfile  = "profile"

	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
)

// UsernameMaxLength bounds usernames (stored as VARCHAR(255)).
const UsernameMaxLength = 255
