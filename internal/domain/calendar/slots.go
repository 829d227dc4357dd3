package calendar

import "time"

// Interval é um intervalo semiaberto [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps usa sobreposição semiaberta: encostar não é sobrepor.
func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && end.After(i.Start)
}

// ComputeSlots lista os inícios possíveis na data para um atendimento de
// duração fixa, em ordem crescente. occupied já deve conter só agendamentos
// que ocupam a agenda e os bloqueios do dia.
func (s Schedule) ComputeSlots(date time.Time, duration time.Duration, occupied []Interval) []time.Time {
	if duration <= 0 {
		return nil
	}

	open, close, ok := s.Window(date)
	if !ok {
		return []time.Time{}
	}

	slots := []time.Time{}
	for cur := open; !cur.Add(duration).After(close); cur = cur.Add(s.granularity) {
		end := cur.Add(duration)

		conflict := false
		for _, iv := range occupied {
			if iv.Overlaps(cur, end) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, cur)
		}
	}

	return slots
}

// Contains informa se start está entre os slots calculados.
func Contains(slots []time.Time, start time.Time) bool {
	for _, s := range slots {
		if s.Equal(start) {
			return true
		}
	}
	return false
}
