// Package services holds the pipeline: ingest feeds the corpus builder, the
// indexer embeds stored chunks, the retriever ranks them, and the answer and
// intake services prompt a language model with what was retrieved.
package services
