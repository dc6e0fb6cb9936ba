package service

import "errors"

// 通用错误
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPassword = errors.New("invalid password")
	ErrWeakPassword    = errors.New("weak password")
)

// 认证错误
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	ErrRefreshTokenDenied  = errors.New("refresh token revoked")
	ErrCaptchaInvalid      = errors.New("invalid captcha")
)

// 用户管理错误
var (
	ErrEmailExists      = errors.New("email already exists")
	ErrUsernameExists   = errors.New("username already exists")
	ErrInvalidRole      = errors.New("invalid role")
	ErrCannotDeleteSelf = errors.New("cannot delete current user")
	ErrProfileEmpty     = errors.New("nothing to update")
)

// 代金券错误
var (
	ErrVoucherInvalid      = errors.New("invalid voucher")
	ErrVoucherNotFound     = errors.New("voucher not found")
	ErrVoucherInactive     = errors.New("voucher inactive")
	ErrVoucherOutOfWindow  = errors.New("voucher out of validity window")
	ErrVoucherExhausted    = errors.New("voucher usage exhausted")
	ErrVoucherBelowMinimum = errors.New("purchase below voucher minimum")
	ErrVoucherCodeExists   = errors.New("voucher code already exists")
	ErrVoucherImmutable    = errors.New("voucher is in a terminal status")
	ErrVoucherUpdateFailed = errors.New("voucher update failed")
	ErrVoucherDeleteFailed = errors.New("voucher delete failed")
	ErrVoucherRedeemRace   = errors.New("voucher redeem contention")
)
