// Package manifest loads treepack manifests and normalizes every supported
// serialization into one canonical, ordered, duplicate-free entry sequence.
//
// # Manifest Formats
//
// A mapping of relative path to base64 payload, as JSON (comments and
// trailing commas allowed), YAML or TOML:
//
//	{
//	  "index.ts": "ZXhwb3J0ICogZnJvbSAnLi90eXBlcyc7Cg==",
//	  "providers/base.ts": "ZXhwb3J0IGludGVyZmFjZSBQcm92aWRlciB7fQo="
//	}
//
// An explicit list, validated against an embedded JSON schema:
//
//	version: "1.0"
//	entries:
//	  - path: index.ts
//	    payload: ZXhwb3J0ICogZnJvbSAnLi90eXBlcyc7Cg==
//
// Delimited blocks, one path===payload pair per block, blocks separated by
// a line holding only "---":
//
//	index.ts===ZXhwb3J0ICogZnJvbSAnLi90eXBlcyc7Cg==
//	---
//	providers/base.ts===ZXhwb3J0IGludGVyZmFjZSBQcm92aWRlciB7fQo=
//
// Caret blocks separated by "^^", the path on the first line of each block
// and the payload on the remaining lines.
//
// Companion files: a directory of _data_*.txt files, each holding the path on
// its first line and the payload on the remainder.
//
// Any file may be gzip or zstd compressed.
//
// # Usage
//
//	loader := manifest.NewLoader(manifest.LoaderOptions{})
//	m, err := loader.Load("_b64.txt")
//	if err != nil {
//	    return err
//	}
//	for _, e := range m.Entries {
//	    // decode and write
//	}
//
// # Error Handling
//
// Every parse failure wraps domain.ErrManifestFormat or
// domain.ErrDuplicatePath; a missing location wraps
// domain.ErrManifestNotFound. Package errors:
//   - ErrUnknownFormat: the requested format name is not supported
//   - ErrUnsupportedVersion: a list manifest declares an incompatible version
//   - ErrSchema: a list manifest does not match the schema
//   - ErrUnterminatedBlock: a ===FILE: source block has no ===END
package manifest
