package api

// TokenResponse представляет ответ эндпоинта выдачи токена (OAuth2 password grant)
type TokenResponse struct {
	AccessToken string `json:"access_token"` // bearer токен
	TokenType   string `json:"token_type"`   // всегда "bearer"
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"` // необязательное отображаемое имя
}

// ErrorResponse представляет ответ с ошибкой.
// Detail - конвенциональное поле, из которого клиент берет сообщение.
type ErrorResponse struct {
	Detail string `json:"detail"`          // описание ошибки
	Error  string `json:"error,omitempty"` // текст HTTP статуса
}

// Token types
const (
	TokenTypeBearer = "bearer"
)
