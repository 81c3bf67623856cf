package vserver

import "github.com/roach88/daoism/internal/query"

// Named queries registered in the catalog.
const (
	QueryByUUID = "vserver-by-uuid"
	QueryByHost = "vserver-by-host"
)

func ByUUID(uuid string) query.Query {
	return query.Named(QueryByUUID).Set("UUID").To(uuid)
}

// ByHost returns the servers on host ordered by name.
func ByHost(host string) query.Query {
	return query.Named(QueryByHost).Set("HOST").To(host)
}
