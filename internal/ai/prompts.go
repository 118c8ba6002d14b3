package ai

// ExtractionPrompt instructs Gemini to turn a pasted order table (text or
// screenshot) into the structured record list the rest of the system
// consumes. The output shape and the OF- id convention are part of the
// gateway contract.
const ExtractionPrompt = `
Extract the order information from the provided content (image or text).
Reformat it into a structured JSON array of objects.

RULES:
1. Extract: Name, Phone Number, Price, and Address.
2. "order_id": Generate a unique ID starting with "OF-" followed by 4 random digits (e.g., OF-1025).
3. "status": Set default value to "Pending".
4. "codBill" should be only the numeric price or total.
5. "contact" should be the phone number(s).
6. "address" should be the delivery notes or full address.
7. DO NOT include flavor or item names.
8. Return a JSON array.

Example output:
[
  {
    "order_id": "OF-1025",
    "name": "Fariya Akter",
    "contact": "01836571137",
    "codBill": "650",
    "address": "সাড়ে এগারো দুয়ারিপাড়া বাজারের মসজিদের সামনে",
    "status": "Pending"
  }
]
`
