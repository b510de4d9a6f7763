/*
Package generator runs the post generation pipeline.

A run validates the request, fetches and cleans the product page, asks the
text model for a post, parses the loosely structured answer and then tries
to attach an image:

	generate  image model only
	scrape    best ranked image from the product page
	auto      generate, falling back to scrape
	none      no image

A produced data URI is uploaded to the image host when one is configured.
Image problems are logged and leave the image empty; they never fail the
run.

Progress callbacks report the fetching, writing, image and done stages so
the streaming endpoint can show them while the run is in flight.
*/
package generator
