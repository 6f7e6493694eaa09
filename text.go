package main

var (
	pageUnavailable = `Sorry, this page could not be loaded right now. Please try again later.`

	incompleteMessage = `Please fill in your name, email, inquiry type and message.`

	inFlightMessage = `Your message is already being sent.`

	dialogClosedMessage = `The contact form was closed. Please open it again to send your message.`
)
