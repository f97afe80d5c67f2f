package query

import (
	"fmt"

	"github.com/roach88/kustoq/internal/expr"
)

// TableRef identifies the source table of a pipeline.
type TableRef struct {
	Name     string
	Database string // optional
	Cluster  string // optional, only rendered together with Database
}

// String renders the header line of a query:
//
//	cluster('help').database('Samples').['StormEvents']
//	database('Samples').['StormEvents']
//	StormEvents
func (r TableRef) String() string {
	switch {
	case r.Database != "" && r.Cluster != "":
		return fmt.Sprintf("cluster(%s).database(%s).%s",
			expr.QuoteString(r.Cluster), expr.QuoteString(r.Database), expr.BracketIdent(r.Name))
	case r.Database != "":
		return fmt.Sprintf("database(%s).%s", expr.QuoteString(r.Database), expr.BracketIdent(r.Name))
	default:
		return expr.QuoteIdent(r.Name)
	}
}

// ClusterRef is the identity context for a cluster.
type ClusterRef struct {
	name string
}

// Cluster starts a cluster-qualified reference.
func Cluster(name string) ClusterRef {
	return ClusterRef{name: name}
}

// Name returns the cluster name.
func (c ClusterRef) Name() string { return c.name }

// Database selects a database in the cluster.
func (c ClusterRef) Database(name string) DatabaseRef {
	return DatabaseRef{cluster: c.name, name: name}
}

func (c ClusterRef) String() string {
	return "cluster(" + expr.QuoteString(c.name) + ")"
}

// DatabaseRef is the identity context for a database, optionally inside a
// cluster.
type DatabaseRef struct {
	cluster string
	name    string
}

// Database starts a database-qualified reference without a cluster.
func Database(name string) DatabaseRef {
	return DatabaseRef{name: name}
}

// Name returns the database name.
func (d DatabaseRef) Name() string { return d.name }

// Cluster returns the cluster name, or "" when there is none.
func (d DatabaseRef) Cluster() string { return d.cluster }

// Table starts a pipeline on a table of this database.
func (d DatabaseRef) Table(name string) TableExpr {
	return newTableExpr(TableRef{Name: name, Database: d.name, Cluster: d.cluster})
}

// TableRef renders the fully qualified reference to a table of this
// database.
func (d DatabaseRef) TableRef(name string) string {
	return TableRef{Name: name, Database: d.name, Cluster: d.cluster}.String()
}

func (d DatabaseRef) String() string {
	s := "database(" + expr.QuoteString(d.name) + ")"
	if d.cluster != "" {
		s = Cluster(d.cluster).String() + "." + s
	}
	return s
}

// Table starts a pipeline on an unqualified table.
func Table(name string) TableExpr {
	return newTableExpr(TableRef{Name: name})
}

// From starts a pipeline on an arbitrary TableRef.
func From(ref TableRef) TableExpr {
	return newTableExpr(ref)
}

func newTableExpr(ref TableRef) TableExpr {
	t := TableExpr{source: ref}
	switch {
	case ref.Name == "":
		t.err = expr.Errorf(expr.ErrCodeInvalidArgument, "table name is empty")
	case ref.Cluster != "" && ref.Database == "":
		t.err = expr.Errorf(expr.ErrCodeInvalidArgument, "cluster %q given without a database", ref.Cluster)
	}
	return t
}
