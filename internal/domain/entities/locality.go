package entities

// Locality identifies one city shard of the catalog. Population is a priority
// hint used to order processing; it never filters localities out.
type Locality struct {
	State      string `json:"state" db:"state"`
	StateSlug  string `json:"state_slug" db:"state_slug"`
	City       string `json:"city" db:"city"`
	CitySlug   string `json:"city_slug" db:"city_slug"`
	Population *int   `json:"population,omitempty" db:"population"`
}

// PopulationOrZero returns the population hint, treating an unknown population
// as zero so such localities sort last.
func (l *Locality) PopulationOrZero() int {
	if l.Population == nil {
		return 0
	}
	return *l.Population
}

// ShardKey returns the blob-store key holding this locality's listing shard.
func (l *Locality) ShardKey() string {
	return "catalog:shard:" + l.StateSlug + ":" + l.CitySlug
}
