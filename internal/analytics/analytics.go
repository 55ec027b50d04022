package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"etkinlik-bot/internal/storage"
)

// DailyStats содержит статистику за день
type DailyStats struct {
	Date         string              `json:"date"`
	TotalQueries int                 `json:"total_queries"`
	UniqueUsers  int                 `json:"unique_users"`
	NoResults    int                 `json:"no_results"`
	ByTier       map[string]int      `json:"by_tier"`
	ByChannel    map[string]int      `json:"by_channel"`
	UserStats    map[int64]UserStats `json:"user_stats"`
}

// UserStats содержит статистику по пользователю
type UserStats struct {
	UserID    int64 `json:"user_id"`
	Queries   int   `json:"queries"`
	NoResults int   `json:"no_results"`
}

// AnalyzeDailyLogs анализирует логи за указанную дату
func AnalyzeDailyLogs(interactions []storage.Interaction, targetDate time.Time) *DailyStats {
	// Нормализуем дату до начала дня
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByTier:    make(map[string]int),
		ByChannel: make(map[string]int),
		UserStats: make(map[int64]UserStats),
	}

	uniqueUsers := make(map[int64]bool)

	for _, it := range interactions {
		if it.Timestamp.Before(startOfDay) || !it.Timestamp.Before(endOfDay) {
			continue
		}
		// Пустые сообщения (команды без текста) не считаем
		if it.UserMessage == "" {
			continue
		}

		stats.TotalQueries++
		uniqueUsers[it.UserID] = true
		stats.ByTier[it.Tier]++
		stats.ByChannel[it.Channel]++

		userStat := stats.UserStats[it.UserID]
		userStat.UserID = it.UserID
		userStat.Queries++
		if it.SourceCount == 0 {
			stats.NoResults++
			userStat.NoResults++
		}
		stats.UserStats[it.UserID] = userStat
	}

	stats.UniqueUsers = len(uniqueUsers)
	return stats
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GenerateReportSummary создает текстовый отчет для администратора
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Etkinlik Bot günlük rapor (%s)\n\n", ds.Date)
	fmt.Fprintf(&b, "• Toplam soru: %d\n", ds.TotalQueries)
	fmt.Fprintf(&b, "• Tekil kullanıcı: %d\n", ds.UniqueUsers)
	fmt.Fprintf(&b, "• Sonuçsuz yanıt: %d\n", ds.NoResults)

	if len(ds.ByTier) > 0 {
		b.WriteString("\nYanıt katmanları:\n")
		for _, tier := range sortedKeys(ds.ByTier) {
			fmt.Fprintf(&b, "- %s: %d\n", tier, ds.ByTier[tier])
		}
	}
	if len(ds.ByChannel) > 0 {
		b.WriteString("\nKanallar:\n")
		for _, ch := range sortedKeys(ds.ByChannel) {
			fmt.Fprintf(&b, "- %s: %d\n", ch, ds.ByChannel[ch])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToJSON сериализует статистику в JSON для детального анализа
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
