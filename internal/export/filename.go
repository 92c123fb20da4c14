package export

import (
	"strings"
	"time"

	"github.com/obadatech/tarkhees-backend/internal/query"
)

// filenameTokens map active filter toggles to Arabic name fragments so the
// saved file records how it was filtered.
const (
	tokenActive         = "نشط"
	tokenExpired        = "منتهي"
	tokenExpiringSoon   = "قريب_الانتهاء"
	tokenNoDuplicates   = "بدون_مكرر"
	tokenNoHighValue    = "بدون_عالي_القيمة"
	tokenNoLowActivity  = "بدون_منخفض_النشاط"
	maxSearchTokenRunes = 10
)

// Filename builds "<base>_<tokens>_<date>_<time>.xlsx". The search term is
// truncated to ten runes so long queries do not blow past filesystem limits.
func Filename(base string, filters query.Filters, now time.Time) string {
	parts := []string{base}

	if filters.ActiveOnly {
		parts = append(parts, tokenActive)
	}
	if filters.ExpiredOnly {
		parts = append(parts, tokenExpired)
	}
	if filters.ExpiringSoonOnly {
		parts = append(parts, tokenExpiringSoon)
	}
	if filters.ExcludeDuplicates {
		parts = append(parts, tokenNoDuplicates)
	}
	if filters.ExcludeHighValue {
		parts = append(parts, tokenNoHighValue)
	}
	if filters.ExcludeLowActivity {
		parts = append(parts, tokenNoLowActivity)
	}

	if search := strings.TrimSpace(filters.Search); search != "" {
		runes := []rune(search)
		if len(runes) > maxSearchTokenRunes {
			runes = runes[:maxSearchTokenRunes]
		}
		parts = append(parts, string(runes))
	}

	parts = append(parts, now.Format("2006-01-02"), now.Format("15-04-05"))
	return strings.Join(parts, "_") + ".xlsx"
}
