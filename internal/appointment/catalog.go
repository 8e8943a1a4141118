package appointment

import "strings"

type CatalogEntry struct {
	Name            string
	Price           int64
	DurationMinutes int
}

// Catalog maps service names to their list price and expected duration.
type Catalog map[string]CatalogEntry

// DefaultCatalog is the clinic's standard service list.
func DefaultCatalog() Catalog {
	entries := []CatalogEntry{
		{Name: "Consulta General", Price: 80000, DurationMinutes: 30},
		{Name: "Limpieza Dental", Price: 150000, DurationMinutes: 60},
		{Name: "Obturación Simple", Price: 200000, DurationMinutes: 45},
		{Name: "Extracción Simple", Price: 120000, DurationMinutes: 30},
		{Name: "Endodoncia", Price: 500000, DurationMinutes: 120},
		{Name: "Ortodoncia - Control", Price: 80000, DurationMinutes: 30},
		{Name: "Blanqueamiento Dental", Price: 300000, DurationMinutes: 90},
		{Name: "Cirugía de Cordales", Price: 450000, DurationMinutes: 90},
	}

	c := make(Catalog, len(entries))
	for _, e := range entries {
		c[strings.ToLower(e.Name)] = e
	}
	return c
}

func (c Catalog) Lookup(service string) (CatalogEntry, bool) {
	e, ok := c[strings.ToLower(strings.TrimSpace(service))]
	return e, ok
}
