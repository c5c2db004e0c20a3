// Package document edits a static HTML page in place.
//
// A Document is the server-side target of a bootstrap sequence: style and
// icon references go before </head>, script references go before </body> in
// the order they are run, and the page's templated element is filled by id.
// Edits splice the original text rather than re-serializing a parsed tree,
// so markup the page author wrote is preserved byte for byte.
package document
