package constants

// 用户角色常量
const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleUser    = "USER"
	UserRoleGuest   = "GUEST"
)

// UserRoles 支持的用户角色集合
var UserRoles = []string{UserRoleAdmin, UserRoleManager, UserRoleUser, UserRoleGuest}

// 代金券状态常量
const (
	VoucherStatusActive    = "ACTIVE"
	VoucherStatusExpired   = "EXPIRED"
	VoucherStatusUsed      = "USED"
	VoucherStatusCancelled = "CANCELLED"
)

// 折扣类型常量
const (
	DiscountTypePercentage   = "PERCENTAGE"
	DiscountTypeFixedAmount  = "FIXED_AMOUNT"
	DiscountTypeFreeShipping = "FREE_SHIPPING"
)

// DiscountTypes 支持的折扣类型集合
var DiscountTypes = []string{DiscountTypePercentage, DiscountTypeFixedAmount, DiscountTypeFreeShipping}

// 校验失败原因常量
const (
	ValidateReasonNotFound     = "NOT_FOUND"
	ValidateReasonInactive     = "INACTIVE"
	ValidateReasonOutOfWindow  = "OUT_OF_WINDOW"
	ValidateReasonExhausted    = "EXHAUSTED"
	ValidateReasonBelowMinimum = "BELOW_MINIMUM"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaRequired    = "captcha_required"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 审计动作常量
const (
	AuditActionVoucherCreate = "voucher_create"
	AuditActionVoucherUpdate = "voucher_update"
	AuditActionVoucherDelete = "voucher_delete"
	AuditActionVoucherCancel = "voucher_cancel"
	AuditActionVoucherRedeem = "voucher_redeem"
	AuditActionUserCreate    = "user_create"
	AuditActionUserUpdate    = "user_update"
	AuditActionUserDelete    = "user_delete"
	AuditActionUserActivate  = "user_activate"
	AuditActionUserDisable   = "user_deactivate"
)

// AuditLogKeepCount 审计日志保留上限
const AuditLogKeepCount = 1000

// 队列常量
const (
	QueueDefault           = "default"
	TaskVoucherExpireSweep = "voucher:expire_sweep"
	TaskAuditLogTrim       = "audit_log:trim"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "vh"
)

// IndefiniteWindowYears 有效期超过该年数时视为长期有效（仅展示用）
const IndefiniteWindowYears = 50
