// Package harness runs YAML scenarios that check predicate translation
// against a real database.
//
// A scenario names a catalog and an entity, stores fixture rows, and lists
// cases. Each case is a predicate tree with the number of rows it must
// match:
//
//	name: vserver_ports
//	description: attribute and literal comparisons
//	catalog: ../catalog/vserver.cue
//	entity: VServer
//	fixtures:
//	  - {uuid: a, numberOfNics: 10, numberOfPorts: 10}
//	  - {uuid: b, numberOfNics: 10, numberOfPorts: 5}
//	cases:
//	  - name: nics_gt_ports
//	    where: {op: gt, attr: numberOfNics, other: numberOfPorts}
//	    expect_count: 1
//	    expect_ids: [b]
//
// Run counts the matches with COUNT(*) and selects them, and a case passes
// when both agree with expect_count. RunWithGolden also compares the SQL
// and arguments of every case against a golden file.
//
// Runs are deterministic: a fresh SQLite file, a fixed clock and
// sequential identifiers for fixtures without one.
package harness
