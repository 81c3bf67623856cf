// Package vserver is a sample domain for the DAO layer: virtual servers
// with typed attributes and named queries.
package vserver

import (
	_ "embed"
	"time"

	"github.com/roach88/daoism/internal/dao"
	"github.com/roach88/daoism/internal/mapping"
	"github.com/roach88/daoism/internal/querysql"
	"github.com/roach88/daoism/internal/spex"
)

//go:embed catalog.cue
var catalogSource string

// EntityName is the catalog name of VServer.
const EntityName = "VServer"

// GeneratedLead is how far in the future New sets the generated date.
const GeneratedLead = 48 * time.Hour

// VServer is a virtual server.
type VServer struct {
	UUID      string     `db:"v_uuid"`
	Name      string     `db:"v_name"`
	Host      string     `db:"v_host"`
	Generated *time.Time `db:"generated"`
	Nics      int64      `db:"number_of_nics"`
	Ports     int64      `db:"number_of_ports"`
	Version   int64      `db:"version"`
	Created   time.Time  `db:"ts_created"`
	Modified  time.Time  `db:"ts_last_modified"`
}

// Attributes of VServer.
var (
	UUID      = spex.NewAttribute[*VServer, string]("uuid")
	Name      = spex.NewAttribute[*VServer, string]("name")
	Host      = spex.NewComparable[*VServer, string]("host")
	Generated = spex.NewDate[*VServer]("generated")
	Created   = spex.NewDate[*VServer]("created")
	Nics      = spex.NewNumber[*VServer, int64]("numberOfNics")
	Ports     = spex.NewNumber[*VServer, int64]("numberOfPorts")
)

// New returns an unsaved VServer generated GeneratedLead after now.
func New(now time.Time) *VServer {
	g := now.UTC().Add(GeneratedLead)
	return &VServer{Generated: &g}
}

func (v *VServer) WithNics(n int64) *VServer {
	v.Nics = n
	return v
}

func (v *VServer) WithPorts(n int64) *VServer {
	v.Ports = n
	return v
}

func (v *VServer) GetID() string     { return v.UUID }
func (v *VServer) GetVersion() int64 { return v.Version }

func (v *VServer) Values() map[string]any {
	return map[string]any{
		"uuid":          v.UUID,
		"name":          v.Name,
		"host":          v.Host,
		"generated":     v.Generated,
		"numberOfNics":  v.Nics,
		"numberOfPorts": v.Ports,
	}
}

// Catalog compiles the embedded VServer catalog.
func Catalog() (*mapping.Catalog, error) {
	return mapping.LoadString("catalog.cue", catalogSource)
}

// Schema returns the CREATE TABLE statement for VServer.
func Schema(cat *mapping.Catalog, d querysql.Dialect) (string, error) {
	e, ok := cat.Entity(EntityName)
	if !ok {
		return "", &dao.Error{Code: dao.ErrCodeUnknownEntity, Entity: EntityName, Message: "entity is not in the catalog"}
	}
	return querysql.CreateTable(e, d), nil
}

// NewDAO returns the typed DAO for VServer.
func NewDAO(p *dao.Provider) (*dao.DAO[*VServer], error) {
	return dao.New[*VServer](p, EntityName)
}
