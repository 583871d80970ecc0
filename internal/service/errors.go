package service

import "errors"

var (
	// auth
	ErrEmailTaken         = errors.New("this email is already registered")
	ErrUsernameTaken      = errors.New("this username is already taken")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrNotVerified        = errors.New("account is not verified, please verify your email")
	ErrUserNotFound       = errors.New("user not found")
	ErrCodeExpired        = errors.New("verification code has expired, please register again")
	ErrCodeMismatch       = errors.New("incorrect verification code")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
	ErrMailNotSent        = errors.New("could not send verification email")

	// catalog
	ErrCategoryNotFound   = errors.New("category not found")
	ErrBrandTaken         = errors.New("this brand already exists")
	ErrCarNotFound        = errors.New("car not found")
	ErrCarDetailsNotFound = errors.New("car details not found")
	ErrImageRequired      = errors.New("image upload is required")
)
