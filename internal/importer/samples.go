// internal/importer/samples.go
package importer

import "github.com/vasujain275/shelfwise-sub000/internal/api"

// SampleCSV returns a one-row template file for the given import kind,
// matching the column order the backend expects.
func SampleCSV(kind api.ImportKind) string {
	switch kind {
	case api.ImportUsers:
		return "id,employeeId,fullName,email,division,department,designation,userRole,userStatus,booksIssued,registrationDate,expirationDate,remarks,password\r\n" +
			"1962c9d4-3b05-44fc-9318-35b083354563,EMP001,Dr. Anil Verma,superadmin@example.com,Administration,IT,Chief Librarian,SUPER_ADMIN,ACTIVE,0,,2030-12-31,Initial super admin,$2a$12$uH2VAwnxs9kumKoneBtOdu\r\n"
	case api.ImportBooks:
		return "id,accessionNumber,isbn,title,subtitle,authorPrimary,authorSecondary,publisher,publicationYear,edition,language,classificationNumber,locationShelf,locationRack,bookCondition,bookStatus,totalCopies,availableCopies,bookType,notes\r\n" +
			"014be107-046d-419f-a874-9fff4b0e9cac,4,,Mind and its body,,Charles Fox,,\"Kegan Paul, Trench, Trubner\",1931,,English,612.821,,,GOOD,AVAILABLE,1,1,GENERAL,Includes bibliographical references\r\n"
	case api.ImportTransactions:
		return "id,bookId,userId,transactionType,status,issueDate,dueDate,returnDate,transactionNotes\r\n" +
			"89f85bea-f5db-4b51-89e4-3f6d98ffbc92,c13a5ac8-f848-4d16-8f57-72ea1cd795b1,48359918-80db-4eaa-8b07-4a40d45e19c5,ISSUE,ACTIVE,2025-07-14T00:00,2025-08-13T00:00,,\r\n"
	}
	return ""
}
