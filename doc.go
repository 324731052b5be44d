// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package sheets-search searches a Google Sheets worksheet range from a browser.

Each browser session signs in with Google, the configured range is fetched once and cached in the
session, and every search after that runs against the cached rows. Matching cells are shown with
a checkbox per row and the checked rows are remembered across searches until the user signs out.

sheets-search supports the following commands:

  - serve, to run the search page web server
  - authorise, to authorise command line access to the Google Sheets worksheet
  - revoke, to revoke the command line access token
  - get, to download the search range as a TSV file
  - search, to search the range from the command line and print the results as TSV (or an Excel workbook)
  - version
*/
package sheets
