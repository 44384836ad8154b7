// Package catalog defines the swimming pool catalog: pools, their facilities
// and user reviews, the request bodies that create and change them, and the
// bundled seed data.
//
// Optional pool attributes are pointers so that "absent" and "zero" stay
// distinguishable in both JSON and SQL. Request types carry validator tags
// and the client-facing messages for them are registered with
// RegisterMessages.
package catalog
