// Package mapping loads the entity catalog: which table an entity lives
// in, which column backs each attribute path, and the named queries
// registered for it.
//
// Catalogs are written in CUE:
//
//	entity: VServer: {
//		table:    "vserver"
//		id:       "uuid"
//		version:  "version"
//		created:  "created"
//		modified: "modified"
//		attributes: {
//			uuid:         {column: "v_uuid", type: "text", category: "equality"}
//			numberOfNics: {column: "number_of_nics", type: "integer"}
//		}
//	}
//
//	query: "vserver-by-uuid": {
//		entity: "VServer"
//		text:   "WHERE {uuid} = :UUID"
//	}
//
// id, version, created, and modified name attribute paths, not columns.
// An attribute's category defaults from its type: text is ordered,
// integer and real are numeric, timestamp is temporal, boolean is
// equality-only.
//
// Named query text is the tail of a SELECT over the entity's table: an
// optional WHERE clause followed by optional ORDER BY, with {path}
// attribute references and :KEY placeholders.
package mapping
