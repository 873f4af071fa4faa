package api

import "github.com/mtanaka/pricewise/internal/analysis"

// HealthStatus is the backend health probe response.
type HealthStatus struct {
	OK                   bool     `json:"ok"`
	VisionModel          []string `json:"vision_model,omitempty"`
	PriceIndexConfigured bool     `json:"price_index_configured"`
}

// MetaHit is one row of a price-index keyword lookup.
type MetaHit struct {
	ID      string `json:"id,omitempty"`
	ClassID string `json:"class_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Profile is the authenticated user's profile.
type Profile struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname,omitempty"`
}

// ProfileUpdate carries a nickname change; a nil nickname clears it.
type ProfileUpdate struct {
	Nickname *string `json:"nickname"`
}

// Receipt is a server-persisted, account-owned record wrapping a result. The
// server assigns id and timestamps; updated_at advances on every successful
// update.
type Receipt struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	PurchaseDate string           `json:"purchase_date,omitempty"`
	StoreName    string           `json:"store_name,omitempty"`
	Result       *analysis.Result `json:"result"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

// ReceiptCreate is the payload for creating a receipt.
type ReceiptCreate struct {
	PurchaseDate *string          `json:"purchase_date"`
	StoreName    *string          `json:"store_name"`
	Result       *analysis.Result `json:"result"`
}

// ReceiptUpdate fully replaces the stored result for a receipt.
type ReceiptUpdate struct {
	Result *analysis.Result `json:"result"`
}

// RankingEntry is one server-computed savings ranking row.
type RankingEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	Nickname      string `json:"nickname,omitempty"`
	TotalSaved    int    `json:"total_saved"`
	TotalOverpaid int    `json:"total_overpaid"`
}

// RankingView is the full ranking response, including the caller's own
// position. Totals and ordering are owned by the remote aggregator.
type RankingView struct {
	Rankings        []RankingEntry `json:"rankings"`
	MyRank          *int           `json:"my_rank"`
	MyNickname      string         `json:"my_nickname,omitempty"`
	MyTotalSaved    int            `json:"my_total_saved"`
	MyTotalOverpaid int            `json:"my_total_overpaid"`
}
