package service

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yasite/internal/db"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	usernameMaxLength = 150
	passwordMinLength = 8

	msgUsernameTaken     = "Пользователь с таким именем уже существует."
	msgUsernameInvalid   = "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и знаки @/./+/-/_."
	msgPasswordTooShort  = "Введённый пароль слишком короткий. Он должен содержать как минимум 8 символов."
	msgPasswordMismatch  = "Введенные пароли не совпадают."
	msgInvalidCredential = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// UserService wraps account registration and authentication.
type UserService struct {
	db *gorm.DB
}

// LoginForm carries the login page fields.
type LoginForm struct {
	Username string
	Password string
	Errors   FormErrors
}

// SignupForm carries the registration page fields.
type SignupForm struct {
	Username  string
	Password1 string
	Password2 string
	Errors    FormErrors
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Get fetches a user by id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate 校验用户名与密码，失败时在表单上记录错误。
func (s *UserService) Authenticate(form *LoginForm) (*db.User, error) {
	form.Errors = FormErrors{}
	form.Username = strings.TrimSpace(form.Username)

	if form.Username == "" {
		form.Errors.Add("username", msgRequired)
	}
	if form.Password == "" {
		form.Errors.Add("password", msgRequired)
	}
	if !form.Errors.Empty() {
		return nil, form.Errors
	}

	var user db.User
	if err := s.db.Where("username = ?", form.Username).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		form.Errors.Add("__all__", msgInvalidCredential)
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(form.Password) {
		form.Errors.Add("__all__", msgInvalidCredential)
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// Register validates the signup form and creates the account.
func (s *UserService) Register(form *SignupForm) (*db.User, error) {
	form.Errors = FormErrors{}
	form.Username = strings.TrimSpace(form.Username)

	switch {
	case form.Username == "":
		form.Errors.Add("username", msgRequired)
	case utf8.RuneCountInString(form.Username) > usernameMaxLength:
		form.Errors.Add("username", maxLengthMessage(usernameMaxLength))
	case !usernamePattern.MatchString(form.Username):
		form.Errors.Add("username", msgUsernameInvalid)
	}

	if form.Password1 == "" {
		form.Errors.Add("password1", msgRequired)
	} else if utf8.RuneCountInString(form.Password1) < passwordMinLength {
		form.Errors.Add("password1", msgPasswordTooShort)
	}
	if form.Password2 == "" {
		form.Errors.Add("password2", msgRequired)
	} else if form.Password1 != form.Password2 {
		form.Errors.Add("password2", msgPasswordMismatch)
	}

	if !form.Errors.Has("username") {
		var count int64
		if err := s.db.Model(&db.User{}).Where("username = ?", form.Username).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			form.Errors.Add("username", msgUsernameTaken)
		}
	}

	if !form.Errors.Empty() {
		return nil, form.Errors
	}

	hashed, err := db.HashPassword(form.Password1)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: form.Username, Password: hashed}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create registers a user outside of the web flow, e.g. from the CLI.
func (s *UserService) Create(username, password string) (*db.User, error) {
	return s.Register(&SignupForm{Username: username, Password1: password, Password2: password})
}
