package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// MasterResponse 操作员信息（脱敏）
type MasterResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	LastLogin string `json:"last_login,omitempty"`
}

// LoginResponse 登录成功响应
// Token 同时写入 HttpOnly Cookie，非浏览器客户端可用作 Bearer
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt string         `json:"expires_at"`
	Master    MasterResponse `json:"master"`
}
