package handler

type signupRequest struct {
	Email     string  `json:"email"     validate:"required,email"`
	Username  string  `json:"username"  validate:"required,max=64"`
	FirstName string  `json:"firstName" validate:"max=100"`
	LastName  string  `json:"lastName"  validate:"max=100"`
	Password  string  `json:"password"  validate:"required,min=8,max=72"`
	Role      string  `json:"role"      validate:"required,role"`
	TenantID  *string `json:"tenantId"`
}

type signinRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
}
