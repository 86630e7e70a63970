package public

import "time"

type RankItem struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"player_name"`
	Hours      int    `json:"hours"`
}

type TopTotalResponse struct {
	Items []RankItem `json:"items"`
	Total int        `json:"total"`
	Limit int        `json:"limit"`
}

type PlayerTotalResponse struct {
	PlayerName string `json:"player_name"`
	Hours      int    `json:"hours"`
}

type TopWeekResponse struct {
	Items     []RankItem `json:"items"`
	Limit     int        `json:"limit"`
	AsOf      time.Time  `json:"as_of"`
	WeekStart time.Time  `json:"week_start"`
	WeekEnd   time.Time  `json:"week_end"`
}

// TopLastWeekResponse has nil week bounds until the first archive run.
type TopLastWeekResponse struct {
	Items      []RankItem `json:"items"`
	Limit      int        `json:"limit"`
	WeekStart  *time.Time `json:"week_start"`
	WeekEnd    *time.Time `json:"week_end"`
	ArchivedAt *time.Time `json:"archived_at"`
}

type HourlyItem struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type HourlyResponse struct {
	Mode  string       `json:"mode"`
	Items []HourlyItem `json:"items"`
}

type DailyItem struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DailyResponse struct {
	Days  int         `json:"days"`
	Items []DailyItem `json:"items"`
}
