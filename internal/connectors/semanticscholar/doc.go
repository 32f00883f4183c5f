// Package semanticscholar provides a connector for the Semantic Scholar Graph API.
//
// Searches hit the paper search endpoint and return titles, abstracts, authors,
// years and open-access PDF links. All API calls share one rate limiter; a 429
// response pushes every caller back by the server's Retry-After window.
//
// PDF downloads go to the publisher hosts and are not throttled by the API limiter.
package semanticscholar
