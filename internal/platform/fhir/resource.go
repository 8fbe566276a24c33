package fhir

// Record is a loosely-typed clinical resource as it arrives on the wire.
// Only resourceType and id are guaranteed; everything else is accessed
// defensively through the accessor functions in this package.
type Record = map[string]interface{}

// Key builds the flat record-map key for a resource.
func Key(resourceType, id string) string {
	return resourceType + "/" + id
}
