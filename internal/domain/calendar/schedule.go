package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayHours é a janela de atendimento de um dia, em minutos desde a meia-noite.
type DayHours struct {
	OpenMin  int
	CloseMin int
}

func (h DayHours) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", h.OpenMin/60, h.OpenMin%60, h.CloseMin/60, h.CloseMin%60)
}

// WeekdayHours é a forma exportável de uma entrada da tabela semanal.
type WeekdayHours struct {
	Weekday time.Weekday `json:"weekday"`
	Open    string       `json:"open"`
	Close   string       `json:"close"`
}

// Schedule é a configuração imutável da agenda da clínica: fuso, horários
// semanais e granularidade dos slots. Dia ausente = clínica fechada.
type Schedule struct {
	loc         *time.Location
	granularity time.Duration
	days        map[time.Weekday]DayHours
}

func NewSchedule(loc *time.Location, granularity time.Duration, days map[time.Weekday]DayHours) (Schedule, error) {
	if loc == nil {
		return Schedule{}, fmt.Errorf("calendar: location required")
	}
	if granularity <= 0 {
		return Schedule{}, fmt.Errorf("calendar: granularity must be positive")
	}
	copied := make(map[time.Weekday]DayHours, len(days))
	for wd, h := range days {
		if h.OpenMin < 0 || h.CloseMin > 24*60 || h.CloseMin <= h.OpenMin {
			return Schedule{}, fmt.Errorf("calendar: invalid hours %s for %s", h, wd)
		}
		copied[wd] = h
	}
	return Schedule{loc: loc, granularity: granularity, days: copied}, nil
}

func (s Schedule) Location() *time.Location   { return s.loc }
func (s Schedule) Granularity() time.Duration { return s.granularity }

// Hours lista a tabela semanal em ordem de domingo a sábado.
func (s Schedule) Hours() []WeekdayHours {
	out := make([]WeekdayHours, 0, len(s.days))
	for wd, h := range s.days {
		out = append(out, WeekdayHours{
			Weekday: wd,
			Open:    fmt.Sprintf("%02d:%02d", h.OpenMin/60, h.OpenMin%60),
			Close:   fmt.Sprintf("%02d:%02d", h.CloseMin/60, h.CloseMin%60),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out
}

// DayBounds devolve [00:00, 00:00 do dia seguinte) da data no fuso da clínica.
func (s Schedule) DayBounds(date time.Time) (time.Time, time.Time) {
	d := date.In(s.loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	return start, start.AddDate(0, 0, 1)
}

// Window devolve abertura e fechamento do dia; ok=false se a clínica não abre.
func (s Schedule) Window(date time.Time) (open, close time.Time, ok bool) {
	d := date.In(s.loc)
	h, found := s.days[d.Weekday()]
	if !found {
		return time.Time{}, time.Time{}, false
	}
	open = time.Date(d.Year(), d.Month(), d.Day(), 0, h.OpenMin, 0, 0, s.loc)
	close = time.Date(d.Year(), d.Month(), d.Day(), 0, h.CloseMin, 0, 0, s.loc)
	return open, close, true
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseHours lê "mon=09:00-18:00,tue=09:00-18:00". Dias omitidos ficam fechados.
func ParseHours(raw string) (map[time.Weekday]DayHours, error) {
	out := make(map[time.Weekday]DayHours)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, window, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("calendar: malformed hours entry %q", entry)
		}
		wd, known := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !known {
			return nil, fmt.Errorf("calendar: unknown weekday %q", name)
		}
		openStr, closeStr, found := strings.Cut(strings.TrimSpace(window), "-")
		if !found {
			return nil, fmt.Errorf("calendar: malformed window %q", window)
		}
		openMin, err := parseHM(openStr)
		if err != nil {
			return nil, err
		}
		closeMin, err := parseHM(closeStr)
		if err != nil {
			return nil, err
		}
		out[wd] = DayHours{OpenMin: openMin, CloseMin: closeMin}
	}
	return out, nil
}

func parseHM(hm string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hm))
	if err != nil {
		return 0, fmt.Errorf("calendar: invalid time %q", hm)
	}
	return t.Hour()*60 + t.Minute(), nil
}
