// Package schema checks operator parameters against declared field types.
//
// Catalog operators declare their parameters as a map of field names to
// type strings:
//
//	parameters:
//	  docid: string
//	  retries: int?
//	  tags: "[string]"
//
// A trailing "?" marks a field optional. Supported names are string, int,
// number (alias float), bool, object and any, plus "[T]" for lists.
//
//	s, err := schema.ParseTypeMap(map[string]string{"docid": "string"})
//	if err != nil {
//	    return err
//	}
//	err = schema.Validate(s, step.Parameters, schema.WithPlaceholder(ref.IsReference))
//
// A placeholder predicate lets values that are only known at run time, such
// as template references, satisfy any declared type.
package schema
