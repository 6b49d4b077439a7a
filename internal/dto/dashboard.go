package dto

// ── 仪表盘与语录 DTO ──

// CreateQuoteRequest 新增语录请求
type CreateQuoteRequest struct {
	Quote  string `json:"quote"  binding:"required"`
	Author string `json:"author" binding:"omitempty,max=200"`
}

// QuoteResponse 语录信息
type QuoteResponse struct {
	ID        string `json:"id"`
	Quote     string `json:"quote"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// DashboardCounts 实体计数
type DashboardCounts struct {
	Orbits       int64 `json:"orbits"`
	Participants int64 `json:"participants"`
	Topics       int64 `json:"topics"`
	Questions    int64 `json:"questions"`
}

// DashboardResponse 仪表盘数据
type DashboardResponse struct {
	Username string          `json:"username"`
	Quotes   []QuoteResponse `json:"quotes"`
	Counts   DashboardCounts `json:"counts"`
}
