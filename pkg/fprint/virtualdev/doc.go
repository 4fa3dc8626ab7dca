// Package virtualdev provides pure-Go fingerprint scanners that
// implement the driver contract without hardware or the native
// library. They back the test suite and let applications develop
// against fprint on machines without a scanner.
//
// A virtual scanner consumes scan payloads from a queue (PushScan);
// when the queue is empty it synthesizes deterministic payloads from
// its device id. Two prints match when their payloads are equal, so a
// test controls match outcomes by pushing the same or different bytes.
// Galleries of scanners can be described in a TOML file and loaded
// with Load.
package virtualdev
