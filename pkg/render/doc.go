// Package render turns a finished response into output bytes.
//
// A [Renderer] consumes a read-only [Response] view and writes headers, the
// status code and the body to an http.ResponseWriter. The framework selects a
// renderer from the negotiated view type (usually the request file extension);
// this package only provides the renderers themselves:
//
//   - [JSON]: {"data": ..., "success": "OK", "messages": [...]} envelope
//   - [CSV]: rows from the data payload, optional "headers" value as first row
//   - [XML]: data payload as an element tree under the "rootElement" value
//   - [Text]: plain dump of status, variables, messages and data (CLI output)
//   - [HTML]: views and layouts from an fs.FS (html/template or markdown) or
//     from registered templ components
//
// Downloadable renderers (CSV, XML and JSON) send no-cache headers and, when
// the response is flagged as a download, a Content-Disposition attachment
// header named after the download filename.
package render
