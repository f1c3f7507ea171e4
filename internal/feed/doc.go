// Package feed computes the social feed.
//
// [Filter] is the single implementation of the all, following and trending filters. The reference
// server runs it over its own state and the [Aggregator] runs it over the local mirror when the
// remote service cannot be reached, so an offline feed is ordered exactly like a live one.
package feed
