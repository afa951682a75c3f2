package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings keeps only the orderings whose field is in `fields`, mapped to the column name.
func AllowedOrderings(ords []DBOrdering, fields map[string]string) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(ords))
	for _, ord := range ords {
		if col, ok := fields[ord.Field]; ok {
			allowed = append(allowed, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return allowed
}
