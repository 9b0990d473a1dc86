package services

import (
	stderrors "errors"
	"log"
	"net/http"

	"github.com/waylines/waylines/config"
	"github.com/waylines/waylines/db"
	apiError "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/models"
	"github.com/waylines/waylines/services/jwt"
	"gorm.io/gorm"
)

// AuthService interface
type AuthService interface {
	SignupUser(user *models.User) (*models.User, error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	LogoutUser(email, token string) error
}

// authService struct
type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
}

// NewAuthService instantiate an authService
func NewAuthService(authRepo db.AuthRepository, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
	}
}

func (s *authService) SignupUser(user *models.User) (*models.User, error) {
	if user == nil {
		return nil, stderrors.New("user is nil")
	}
	if err := user.Sanitize(); err != nil {
		log.Printf("SignupUser error sanitizing user: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if err := user.ValidatePassword(); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}

	if err := s.authRepo.IsEmailExist(user.Email); err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}
	if err := s.authRepo.IsUsernameExist(user.Username); err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, apiError.GetUniqueContraintError(err)
	}

	if err := user.HashPassword(); err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.IsEmailActive = true

	role, err := s.authRepo.FindRoleByName(models.RoleUser)
	if err == nil {
		user.RoleID = role.ID
	}

	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error creating user: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

func (s *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	user, err := s.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
		}
		log.Printf("LoginUser error: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	if !user.IsEmailActive {
		return nil, apiError.InActiveUserError
	}
	if err := user.VerifyPassword(loginRequest.Password); err != nil {
		return nil, apiError.New("invalid email or password", http.StatusUnauthorized)
	}

	accessToken, err := jwt.GenerateToken(user.ID, user.Username, s.Config.JWTSecret)
	if err != nil {
		log.Printf("LoginUser error generating token: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	if err := s.authRepo.SetUserOnline(user.ID, true); err != nil {
		log.Printf("LoginUser error setting online flag: %v", err)
	}

	return &models.LoginResponse{
		UserID:      user.ID,
		Username:    user.Username,
		Fullname:    user.Fullname,
		Email:       user.Email,
		AccessToken: accessToken,
	}, nil
}

func (s *authService) LogoutUser(email, token string) error {
	blacklist := &models.Blacklist{
		Email: email,
		Token: token,
	}
	if err := s.authRepo.AddToBlackList(blacklist); err != nil {
		log.Printf("LogoutUser error: %v", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
