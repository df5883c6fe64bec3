package model

import "fmt"

// Entity identifies one attribute of one upstream context entity.
type Entity struct {
	Type      string
	ID        string
	Attribute string
}

// String returns e.g. "Lamp/urn:ngsi-ld:Lamp:03x/luminosity".
func (e Entity) String() string {
	return fmt.Sprintf("%s/%s/%s", e.Type, e.ID, e.Attribute)
}

var entityTypes = map[Kind]string{
	Luminosity:  "Lamp",
	Humidity:    "Humi",
	Temperature: "Temp",
}

// DefaultEntity returns the entity a kind is read from for a device suffix
// such as "03x".
func DefaultEntity(kind Kind, suffix string) Entity {
	typ := entityTypes[kind]
	return Entity{
		Type:      typ,
		ID:        fmt.Sprintf("urn:ngsi-ld:%s:%s", typ, suffix),
		Attribute: string(kind),
	}
}
