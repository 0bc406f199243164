package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"

	adapter "github.com/aretw0/stepflow/pkg/adapters/loam"
	"github.com/aretw0/stepflow/pkg/dsl"
	"github.com/aretw0/stepflow/pkg/domain"
)

const catalog = `extensions:
  - name: samples
    version: 1.0.0
    operators:
      - id: "@trigger/manual"
        category: trigger
        outputs:
          - key: .source.id
            name: Source document
            type: string
          - key: .source.name
            name: Source name
            type: string
      - id: "@anyshare/data/list-files"
        category: dataSource
        outputs:
          - key: .files
            name: Files
            type: array
      - id: "@anyshare/file/copy"
        category: executor
        strict: true
        parameters:
          docid: string
          destparent: string
        outputs:
          - key: .id
            name: Copy
            type: string
      - id: "@internal/cmp/string-eq"
        category: comparator
`

func main() {
	targetDir := "examples/flows"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		fail(err)
	}
	fmt.Printf("Generating sample flows in: %s\n", targetDir)

	// No versioning: plain files that `stepflow validate --dir` can read.
	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		fail(err)
	}
	src := adapter.New(loam.NewTypedRepository[adapter.FlowMetadata](repo))
	ctx := context.TODO()

	for _, sample := range []struct {
		flow        *domain.Flow
		description string
	}{
		{copyOnUpload(), "Copies every uploaded document to the archive."},
		{routeByName(), "Routes a document by name; the fallback arm references a sibling arm and fails validation."},
		{copyListed(), "Copies each file returned by the list data source."},
	} {
		if err := src.SaveFlow(ctx, sample.flow, sample.description); err != nil {
			fail(err)
		}
	}

	if err := os.WriteFile(filepath.Join(targetDir, "operators.yaml"), []byte(catalog), 0644); err != nil {
		fail(err)
	}
	fmt.Println("Done. Check them with: stepflow validate --all --dir", targetDir)
}

func copyOnUpload() *domain.Flow {
	b := dsl.New()
	trigger := b.Trigger("@trigger/manual")
	b.Step("@anyshare/file/copy").
		Title("Archive").
		Param("docid", trigger.Out(".source.id")).
		Param("destparent", "gns://archive")
	return b.Flow("copy-on-upload", "Copy on upload")
}

func routeByName() *domain.Flow {
	b := dsl.New()
	trigger := b.Trigger("@trigger/manual")

	fork := b.Branches()
	reports := fork.Branch().ID("reports")
	reports.Group().Cond("@internal/cmp/string-eq").
		Param("a", trigger.Out(".source.name")).
		Param("b", "report.pdf")
	copied := reports.Step("@anyshare/file/copy").
		Param("docid", trigger.Out(".source.id")).
		Param("destparent", "gns://reports")

	fork.Branch().ID("fallback").Step("@anyshare/file/copy").
		Param("docid", copied.Out(".id")).
		Param("destparent", "gns://misc")
	return b.Flow("route-by-name", "Route by name")
}

func copyListed() *domain.Flow {
	b := dsl.New()
	trigger := b.Trigger("@trigger/manual")
	list := trigger.DataSource("@anyshare/data/list-files").Param("docid", trigger.Out(".source.id"))

	loop := b.Loop()
	loop.Param("items", list.Out(".files"))
	loop.Step("@anyshare/file/copy").
		Param("docid", loop.Out(".value")).
		Param("destparent", "gns://copies")
	return b.Flow("copy-listed", "Copy listed files")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
