package prefs

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Layout is the persisted UI layout preference blob. It is stored as a
// single JSON value under a fixed key and read back on startup.
type Layout struct {
	GridWidthPct int  `json:"grid_width_pct"`
	Columns      int  `json:"columns"`
	ShowSidebar  bool `json:"show_sidebar"`
	ShowInsights bool `json:"show_insights"`
	ShowPreview  bool `json:"show_preview"`
}

// DefaultLayout is what a fresh profile, or an unreadable stored blob,
// resolves to.
func DefaultLayout() Layout {
	return Layout{
		GridWidthPct: 100,
		Columns:      3,
		ShowSidebar:  true,
		ShowInsights: true,
		ShowPreview:  false,
	}
}

// DecodeLayout parses a stored blob. Malformed input falls back to the
// defaults rather than erroring; a corrupt preference must never block
// startup. Fields absent from the blob keep their default values.
func DecodeLayout(data []byte) Layout {
	l := DefaultLayout()
	if len(data) == 0 {
		return l
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return DefaultLayout()
	}
	return l.sanitized()
}

// EncodeLayout serializes l for storage.
func EncodeLayout(l Layout) ([]byte, error) {
	return json.Marshal(l.sanitized())
}

// sanitized clamps out-of-range values back to usable ones.
func (l Layout) sanitized() Layout {
	if l.GridWidthPct < 10 || l.GridWidthPct > 100 {
		l.GridWidthPct = DefaultLayout().GridWidthPct
	}
	if l.Columns < 1 || l.Columns > 12 {
		l.Columns = DefaultLayout().Columns
	}
	return l
}
