package catalog

import (
	"bytes"
	"sort"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Graph é o grafo de pré-requisitos: serviço -> serviços exigidos.
type Graph map[uuid.UUID][]uuid.UUID

func BuildGraph(edges []models.ServicePrerequisite) Graph {
	g := make(Graph)
	for _, e := range edges {
		g[e.ServiceID] = append(g[e.ServiceID], e.RequiredServiceID)
	}
	return g
}

// WithEdges devolve uma cópia do grafo com as arestas de serviceID trocadas.
func (g Graph) WithEdges(serviceID uuid.UUID, required []uuid.UUID) Graph {
	out := make(Graph, len(g)+1)
	for k, v := range g {
		out[k] = v
	}
	out[serviceID] = append([]uuid.UUID(nil), required...)
	return out
}

const (
	unvisited = iota
	onStack
	done
)

// FindCycle roda uma DFS com pilha de recursão e devolve o primeiro ciclo
// encontrado, começando e terminando no mesmo serviço. nil = acíclico.
func (g Graph) FindCycle() []uuid.UUID {
	state := make(map[uuid.UUID]int, len(g))
	var stack []uuid.UUID

	var visit func(n uuid.UUID) []uuid.UUID
	visit = func(n uuid.UUID) []uuid.UUID {
		state[n] = onStack
		stack = append(stack, n)

		for _, next := range g[n] {
			switch state[next] {
			case onStack:
				for i, s := range stack {
					if s == next {
						cycle := append([]uuid.UUID(nil), stack[i:]...)
						return append(cycle, next)
					}
				}
			case unvisited:
				if c := visit(next); c != nil {
					return c
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range sortedKeys(g) {
		if state[n] == unvisited {
			if c := visit(n); c != nil {
				return c
			}
		}
	}
	return nil
}

// ValidatePrerequisites rejeita a edição que criaria um ciclo.
func ValidatePrerequisites(existing []models.ServicePrerequisite, serviceID uuid.UUID, required []uuid.UUID) error {
	for _, r := range required {
		if r == serviceID {
			return httperr.Validation("prerequisite_cycle", "Un servicio no puede ser requisito de sí mismo.").
				With("service_id", serviceID.String())
		}
	}

	cycle := BuildGraph(existing).WithEdges(serviceID, required).FindCycle()
	if cycle == nil {
		return nil
	}

	path := make([]string, len(cycle))
	for i, id := range cycle {
		path[i] = id.String()
	}
	return httperr.Validation("prerequisite_cycle", "Los requisitos forman un ciclo.").
		With("cycle", path)
}

func sortedKeys(g Graph) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	return keys
}
