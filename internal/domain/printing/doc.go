// Package printing contains the document model shared by every export format.
// Services describe a report as a Document made of tables; the PDF, Word,
// Excel and CSV builders render the same Document in their own format.
package printing
