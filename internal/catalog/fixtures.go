package catalog

// Fixtures returns the built-in catalog. A book's branch names the library
// that has it in stock.
func Fixtures() Snapshot {
	return Snapshot{
		Libraries: []Library{
			{Branch: "downtown"},
			{Branch: "riverside"},
		},
		Books: []Book{
			{Title: "The Awakening", Author: "Kate Chopin", Branch: "riverside"},
			{Title: "City of Glass", Author: "Paul Auster", Branch: "downtown"},
		},
		Authors: []Author{
			{Name: "Kate Chopin", FavoritePie: "lemon"},
			{Name: "Paul Auster", FavoritePie: "cherry"},
		},
		Titles: []Title{
			{Name: "City of Glass", Pages: 452, Ebook: false},
			{Name: "The Awakening", Pages: 451, Ebook: true},
		},
	}
}

// MustFixtures builds a Catalog from Fixtures and panics if they are invalid.
func MustFixtures() *Catalog {
	c, err := New(Fixtures())
	if err != nil {
		panic("catalog: invalid fixtures: " + err.Error())
	}
	return c
}
