// Package pubmed provides a connector for PubMed through the NCBI E-utilities.
//
// A search runs esearch to collect PMIDs restricted to a publication date range,
// then efetch to pull titles, abstracts, authors and years as XML. PubMed serves
// abstracts only, so candidates never carry a PDF link and ingest uses the
// abstract as the document text.
package pubmed
