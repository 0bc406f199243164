/*
Package ports defines the driven ports (interfaces) for stepflow.

These interfaces decouple validation from where step trees are kept, so the
same engine can check flows held in memory, in Redis or in a directory of
flow documents.

# Key Interfaces

  - FlowStore: read-write persistence of flows (e.g., Memory or Redis).
  - FlowSource: read-only catalog of flows (e.g., a Loam directory).
  - DistributedLocker: serializes concurrent edits to one flow across replicas.
*/
package ports
