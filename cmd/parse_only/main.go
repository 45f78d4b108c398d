package main

import (
	"flag"
	"io/ioutil"
	"log"
	"os"

	"github.com/sesam/prologcoin/clausedb"
	"github.com/sesam/prologcoin/parser"
)

var (
	inputFilename  = flag.String("input", "", "Input file (required)")
	outputFilename = flag.String("output", "", "Output file (required)")
)

func main() {
	flag.Parse()
	if *inputFilename == "" {
		log.Fatalf("-input is required")
	}
	if *outputFilename == "" {
		log.Fatalf("-output is required")
	}
	bs, err := ioutil.ReadFile(*inputFilename)
	if err != nil {
		log.Fatalf("input: %v", err)
	}
	clauses, err := parser.ParseClauses(string(bs))
	if err != nil {
		log.Fatalf("parse: %v", err)
	}
	db := clausedb.New()
	if err := db.AssertAll(clauses); err != nil {
		log.Fatalf("assert: %v", err)
	}
	out, err := os.Create(*outputFilename)
	if err != nil {
		log.Fatalf("open output: %v", err)
	}
	defer out.Close()
	db.PrintDB(out)
}
