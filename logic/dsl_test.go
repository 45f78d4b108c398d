package logic_test

import (
	"github.com/sesam/prologcoin/dsl"
)

var (
	atom    = dsl.Atom
	clause  = dsl.Clause
	clauses = dsl.Clauses
	comp    = dsl.Comp
	ilist   = dsl.IList
	int_    = dsl.Int
	list    = dsl.List
	query   = dsl.Query
	svar    = dsl.SVar
	terms   = dsl.Terms
	var_    = dsl.Var
)
