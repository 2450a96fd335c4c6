package common

type ItemType string

const (
	ItemTypeBlock       ItemType = "block"
	ItemTypeTransaction ItemType = "transaction"
	ItemTypeReceipt     ItemType = "receipt"
	ItemTypeLog         ItemType = "log"
)

type FieldType int

const (
	FieldTypeString FieldType = iota
	FieldTypeInt64
	// FieldTypeDecimal is an exact integer carried as a base-10 string.
	FieldTypeDecimal
	FieldTypeStringList
)

type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered, versioned export field list of one item type.
// Appending fields is backward compatible, removing or reordering requires a version bump.
type Schema struct {
	Name    ItemType
	Version int
	Fields  []Field
}

func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s *Schema) IndexOf(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Item is one export record. Values[i] holds the value of Schema.Fields[i]:
// string, int64, []string or nil when absent.
type Item struct {
	Schema *Schema
	Values []interface{}
}

func (i Item) Type() ItemType {
	return i.Schema.Name
}

func (i Item) Get(name string) (interface{}, bool) {
	idx := i.Schema.IndexOf(name)
	if idx < 0 {
		return nil, false
	}
	return i.Values[idx], true
}

// Map returns the item as a field name to value mapping.
func (i Item) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(i.Values))
	for idx, f := range i.Schema.Fields {
		m[f.Name] = i.Values[idx]
	}
	return m
}
