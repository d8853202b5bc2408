package graph

import (
	"github.com/graphql-go/graphql"
)

// SDL is the schema served by NewSchema, in schema definition language.
const SDL = `# A library has a branch and books
type Library {
  branch: String!
  books: [Book!]
}

# A book has a title and author
type Book {
  title: Title!
  author: Author!
}

type Author {
  name: String!
  favorite_pie: String!
}

type Title {
  name: String!
  pages: Int!
  ebook: Boolean!
}

type Satellite {
  name: String!
  id: Int!
}

type Location {
  name: String!
  id: Int!
  latitude: Float!
  longitude: Float!
  altitude: Float!
  velocity: Float!
  visibility: String!
  timestamp: Int!
}

type APOD {
  copyright: String
  date: String!
  explanation: String!
  hdurl: String
  media_type: String!
  service_version: String!
  title: String!
  url: String!
}

type NEO_BODY {
  id: String!
  name: String!
  is_potentially_hazardous_asteroid: Boolean!
}

type Query {
  libraries: [Library]
  satellites: [Satellite]
  locations: [Location]
  neos: [NEO_BODY]
  apod: APOD
}
`

func nonNull(t graphql.Output) graphql.Output {
	return graphql.NewNonNull(t)
}

// scalarFields declares fields resolved by property lookup on the parent.
func scalarFields(defs map[string]graphql.Output) graphql.Fields {
	fields := make(graphql.Fields, len(defs))
	for name, t := range defs {
		fields[name] = &graphql.Field{Type: t}
	}
	return fields
}

// NewSchema builds the gateway schema. Fields without an explicit resolver
// are read from the parent by name, so parent objects must expose a
// property (map key or json tag) matching the field name.
func NewSchema() (graphql.Schema, error) {
	authorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: scalarFields(map[string]graphql.Output{
			"name":         nonNull(graphql.String),
			"favorite_pie": nonNull(graphql.String),
		}),
	})

	titleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Title",
		Fields: scalarFields(map[string]graphql.Output{
			"name":  nonNull(graphql.String),
			"pages": nonNull(graphql.Int),
			"ebook": nonNull(graphql.Boolean),
		}),
	})

	bookType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Book",
		Description: "A book has a title and author",
		Fields: graphql.Fields{
			"title": &graphql.Field{
				Type:    nonNull(titleType),
				Resolve: resolveBookTitle,
			},
			"author": &graphql.Field{
				Type:    nonNull(authorType),
				Resolve: resolveBookAuthor,
			},
		},
	})

	libraryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Library",
		Description: "A library has a branch and books",
		Fields: graphql.Fields{
			"branch": &graphql.Field{
				Type: nonNull(graphql.String),
			},
			"books": &graphql.Field{
				Type:    graphql.NewList(nonNull(bookType)),
				Resolve: resolveLibraryBooks,
			},
		},
	})

	satelliteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Satellite",
		Fields: scalarFields(map[string]graphql.Output{
			"name": nonNull(graphql.String),
			"id":   nonNull(graphql.Int),
		}),
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: scalarFields(map[string]graphql.Output{
			"name":       nonNull(graphql.String),
			"id":         nonNull(graphql.Int),
			"latitude":   nonNull(graphql.Float),
			"longitude":  nonNull(graphql.Float),
			"altitude":   nonNull(graphql.Float),
			"velocity":   nonNull(graphql.Float),
			"visibility": nonNull(graphql.String),
			"timestamp":  nonNull(graphql.Int),
		}),
	})

	apodType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "APOD",
		Description: "Astronomy picture of the day",
		Fields: scalarFields(map[string]graphql.Output{
			"copyright":       graphql.String,
			"date":            nonNull(graphql.String),
			"explanation":     nonNull(graphql.String),
			"hdurl":           graphql.String,
			"media_type":      nonNull(graphql.String),
			"service_version": nonNull(graphql.String),
			"title":           nonNull(graphql.String),
			"url":             nonNull(graphql.String),
		}),
	})

	neoBodyType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "NEO_BODY",
		Description: "A near-earth object listed for today",
		Fields: scalarFields(map[string]graphql.Output{
			"id":                                nonNull(graphql.String),
			"name":                              nonNull(graphql.String),
			"is_potentially_hazardous_asteroid": nonNull(graphql.Boolean),
		}),
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"libraries": &graphql.Field{
				Type:    graphql.NewList(libraryType),
				Resolve: resolveLibraries,
			},
			"satellites": &graphql.Field{
				Type:    graphql.NewList(satelliteType),
				Resolve: resolveSatellites,
			},
			"locations": &graphql.Field{
				Type:    graphql.NewList(locationType),
				Resolve: resolveLocations,
			},
			"neos": &graphql.Field{
				Type:    graphql.NewList(neoBodyType),
				Resolve: resolveNEOs,
			},
			"apod": &graphql.Field{
				Type:    apodType,
				Resolve: resolveAPOD,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// MustSchema is NewSchema for callers that treat a bad schema as fatal.
func MustSchema() graphql.Schema {
	s, err := NewSchema()
	if err != nil {
		panic("graph: build schema: " + err.Error())
	}
	return s
}
