package api

// Invite requests are copied field by field onto the provisioning inputs,
// including the promoted profile.Person fields.

type SignUpCompanyRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpInspectorRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type InviteEmployeeRequest struct {
	Email      string  `json:"email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Address    *string `json:"address"`
	SocialLink *string `json:"social_link"`
	CityID     int64   `json:"city_id"`
	Phone      string  `json:"phone_number"`
}

type InviteInspectorRequest struct {
	Email      string  `json:"email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Address    *string `json:"address"`
	SocialLink *string `json:"social_link"`
	CityID     *int64  `json:"city_id"`
	Phone      string  `json:"phone_number"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}
