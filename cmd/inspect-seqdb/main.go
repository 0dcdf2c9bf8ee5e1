// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The inspect-seqdb command allows the sequence-DB index built by seqdb.Open
// to be queried directly. It will be found alongside the protein database it
// indexes, named "<database-basename-sanitized>.kvdb". Output is a JSON
// stream of {"seq_id": ..., "length": ...} records on stdout.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"modernc.org/kv"

	"github.com/kortschak/msatools/internal/store"
)

func main() {
	path := flag.String("db", "", "specify sequence-DB index file to inspect (produced by seqdb.Open)")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := kv.Open(*path, &kv.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	enc := json.NewEncoder(os.Stdout)
	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return
		}
		log.Fatal(err)
	}
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			log.Fatal(err)
		}
		err = enc.Encode(record{
			SeqID:  store.UnmarshalSeqKey(k),
			Length: len(v),
		})
		if err != nil {
			log.Fatal(err)
		}
	}
}

type record struct {
	SeqID  string `json:"seq_id"`
	Length int    `json:"length"`
}
